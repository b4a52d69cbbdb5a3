// Package config owns the durable multi-account registry and the
// account-selection policy built on top of it.
//
// The registry is a JSON document at <root>/accounts.json with per-account
// OAuth artifacts under <root>/accounts/<id>/. These paths are a persisted
// contract: external tooling may read or edit them, so the layout must not
// change without a migration path.
//
// Resolution enforces the read/write asymmetry at the heart of the system:
// read operations may fan out across every enabled account, while write
// operations require an explicit account id and never default.
package config
