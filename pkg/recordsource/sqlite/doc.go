// Package sqlite reads records and column metadata from SQLite tables and
// writes submitted form values back. It uses the pure Go modernc.org/sqlite
// driver registered as "sqlite".
//
// Values read from a row are handed to form.Form.Reset unchanged except for
// BLOB columns, which become strings; list fields stored as brace arrays
// ("{a,b}") are decoded during normalization. On write, list values are
// encoded with form.FormatBraceArray and booleans as 0/1.
package sqlite
