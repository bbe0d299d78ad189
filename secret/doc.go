// Package secret resolves credential material referenced from configuration.
//
// A configuration value may be:
//   - a literal, returned unchanged
//   - contain ${VAR} references, expanded strictly (see ExpandEnvStrict)
//   - a secret reference "secretref:<provider>:<ref>", resolved by a Provider
//
// Two providers are built in: "env" reads an environment variable and "file"
// reads a mounted secret file. References may also appear inline, as in
// "Bearer secretref:env:DOTCMS_TOKEN".
package secret
