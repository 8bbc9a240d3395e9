// Package handler is the first layer. The first entry point
// after the router.
//
// It turns HTTP requests into calls on the service layer and
// writes their results. Validation and the submission pipeline
// live below it; handlers stay thin.
package handler
