// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package importer loads articles, quizzes and vocabulary into the database.

YAML documents list articles with their quiz and vocabulary inline:

	articles:
	  - slug: black-holes
	    video_id: abc123
	    title: Black Holes Explained
	    quiz:
	      - question: What escapes a black hole?
	        choices: [Light, Nothing]
	        answer: Nothing
	    vocabulary:
	      - word: horizon
	        definition: the boundary

Articles and quizzes are upserted by slug, and each import appends a new
vocabulary list. Invalid entries are skipped and reported in Result.Errors.

XLSX workbooks carry one article's vocabulary on their first sheet, with a
header row and the columns word, pronunciation, definition, example.
*/
package importer
