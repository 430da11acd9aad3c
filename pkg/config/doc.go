// Package config loads releasemgr configuration: built-in defaults for the
// Canonical Kubernetes snap and k8s-operator bundle, optionally overridden
// by a YAML file, with CLI flags layered on top by the command layer.
// Credentials never live here; they come from the environment
// (CHARMCRAFT_AUTH, LPCREDS, SQA_TOKEN).
package config
