// Package all imports all supported repository implementations.
//
// Import this package for its side effects to register all repository types:
//
//	import (
//		"github.com/git-pkgs/composer"
//		_ "github.com/git-pkgs/composer/all"
//	)
//
//	// Now all repository types are available
//	kinds := composer.SupportedRepositories()
//	// ["composer"]
package all

import (
	_ "github.com/git-pkgs/composer/internal/packagist"
)
