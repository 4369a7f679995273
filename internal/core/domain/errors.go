package domain

import "errors"

// ErrCredentialRequestFailed is an error thrown when the credential endpoint cannot deliver a usable credential
var ErrCredentialRequestFailed = errors.New("credential request failed")

// ErrStorageUploadFailed is an error thrown when the storage backend rejects the upload
var ErrStorageUploadFailed = errors.New("storage upload failed")

// ErrImageNotReady is an error thrown when a mask is composed before its source image is decoded
var ErrImageNotReady = errors.New("image not ready")

// ErrInvalidInputData is an error thrown when input data is malformed or empty
var ErrInvalidInputData = errors.New("invalid input data")

// ErrIssuerUnavailable is an error thrown when the credential subsystem cannot be reached
var ErrIssuerUnavailable = errors.New("issuer unavailable")

// ErrBusy is an error thrown when an upload is already in flight for the session
var ErrBusy = errors.New("upload already in progress")

// ErrNoOriginal is an error thrown when a mask operation needs an original that was never uploaded
var ErrNoOriginal = errors.New("no original image")

// ErrNoMask is an error thrown when no current mask exists
var ErrNoMask = errors.New("no mask generated")

// ErrDrawingCleared is an error thrown when the drawing is cleared while its mask is generated
var ErrDrawingCleared = errors.New("drawing cleared during mask generation")

// ErrTraceNotFound is an error thrown when no trace entry exists for a role
var ErrTraceNotFound = errors.New("trace not found")

// ErrContentTypeMismatch is an error thrown when stored bytes do not match the role's allowed types
var ErrContentTypeMismatch = errors.New("content type mismatch")

// ErrUnknownObject is an error thrown when an object key does not belong to any asset role
var ErrUnknownObject = errors.New("unknown object")
