// Package catalog holds the static model table and the two prompt prefixes
// used when calling the inference API.
package catalog
