// Package logger wraps zap with a global sugared logger, context helpers
// (ToContext, FromContext, WithName, WithKV) and level utilities.
//
// Services take a context and extract the logger from it, so every component
// logs under the name and fields its caller attached.
package logger
