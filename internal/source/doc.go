// Package source provisions the resources tree from a git remote.
//
// GitSource clones the configured remote into the resources directory, or fetches and
// moves the tracked branch forward when the directory already holds that repository.
// Private remotes are reached with a GitHub personal access token kept in the OS
// credential store by CredentialManager.
package source
