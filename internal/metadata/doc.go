// Package metadata splits model-generated video metadata into a title and a
// description.
//
// The model answers in free text, so Parse is best effort: it prefers content
// wrapped in triple double-quotes, recognises "Title:" and "Description:"
// labels (with or without markdown emphasis), and always keeps the verbatim
// answer in Metadata.Raw so nothing the model produced is lost.
package metadata
