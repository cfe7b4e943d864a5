// Package logger wraps zap to provide:
//   - a console logger constructor shared by the release-builder binary,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - the --debug level switch,
//   - convenience functions (InfoKV, ErrorKV, etc.).
//
// The root command builds one logger at startup and stores it in the context.
// Every pipeline step extracts it from there, so no step touches a global.
package logger
