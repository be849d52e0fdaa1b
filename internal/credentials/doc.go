// Package credentials resolves the Clarifai personal access token.
//
// Lookup order: the process environment, a dotenv file (KEY=value lines, read
// without modifying the environment), and finally a flat TOML secrets file
// such as:
//
//	CLARIFAI_PAT = "..."
//
// Absent files are skipped; unreadable or malformed ones are configuration
// errors.
package credentials
