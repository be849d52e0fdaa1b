// Package clarifai calls the Clarifai v2 "post model outputs" REST endpoint
// with a single text input and returns the first output's text.
//
// Non-success answers (HTTP status >= 300 or an API status code other than
// 10000) surface as *RemoteAPIError, which matches services.ErrRemoteAPI.
package clarifai
