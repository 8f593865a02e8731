// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags loads .env (if present) and returns a Config struct:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p                    Server port
	-d                    Database URL
	-t                    Database type (sqlite or postgres)
	--base-url            Public base URL
	--tz                  Timezone for learning days
	--session-secret      Session signing secret
	--admin-key           Admin key for content import
	--oauth-client-id     Google OAuth client ID
	--oauth-client-secret Google OAuth client secret
	--attempt-ttl         Age after which open attempts are swept
	-import               Import a .yaml or .xlsx file and exit
	-slug                 Article slug for .xlsx imports

# Environment Variables

Flags fall back to environment variables:

	PORT, DATABASE_URL, DATABASE_TYPE, BASE_URL, APP_TIMEZONE,
	SESSION_SECRET, ADMIN_KEY, OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET,
	ATTEMPT_TTL

CLI flags take precedence over environment variables, and real
environment variables take precedence over .env.

# Validation

ParseFlags returns an error when DATABASE_URL is missing, the database
type is unknown or the timezone cannot be loaded. Starting the server also
requires SESSION_SECRET and ADMIN_KEY; import mode does not.
*/
package cliparse
