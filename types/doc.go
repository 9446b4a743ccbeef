// Package types provides core types used across the nefacrag pipeline.
// This package has ZERO dependencies on other nefacrag packages to avoid
// circular imports. All other packages should import types from here.
package types
