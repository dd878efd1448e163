// Package env expands {{name}} placeholders in requests.
//
// Values come from variables set on the Resolver (usually from --var flags,
// the config file and .env files), from the process environment with
// {{$NAME}}, and from a few generator functions such as {{uuid()}}.
package env
