// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package home builds the filtered article list shown on the home page:
// query parameter parsing, SQL construction, filter options and the
// per-user completion split.
package home
