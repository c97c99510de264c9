// Package config resolves the settings of a deployment.
//
// Settings are layered, later layers winning field by field:
//
//  1. built-in defaults
//  2. environment (AWS_REGION, BUCKET_NAME, WRITE_VERSIONS_JSON)
//  3. the YAML config file, given explicitly or found under
//     $XDG_CONFIG_HOME/gdeploy/config.yaml
//  4. presets such as "preview" and "live", in the order requested
//  5. flags set on the command line, then the positional directory
//
// When project or branch is still unknown they are inferred from version
// control: the project from the github.com "origin" remote and the branch
// from the current checkout.
package config
