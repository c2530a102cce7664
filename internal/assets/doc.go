// Package assets provides the in-page scripts the renderer evaluates inside
// the browser: readiness probe, storage seeding, header stripping and page
// height measurement.
//
// # Loader Architecture
//
//	ScriptLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in scripts)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver lets a deployment override a built-in script, or add new
// post-processing hooks, by dropping a file into a directory:
//
//	{basePath}/
//	└── scripts/
//	    └── {name}.js            # one function expression, e.g. (opts) => {...}
//
// # Security
//
// Script names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
