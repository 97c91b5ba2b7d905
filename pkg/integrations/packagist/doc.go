// Package packagist provides an HTTP client for the Packagist registry.
//
// # Overview
//
// [Packagist] is the main Composer repository for PHP packages. This package
// fetches release metadata from its p2 API:
//
//	GET https://repo.packagist.org/p2/{vendor}/{package}.json
//
// # Usage
//
//	client := packagist.NewClient(packagist.Options{UserAgent: "composer-lsp"})
//	info, err := client.FetchPackage(ctx, "symfony/console")
//	if err != nil {
//	    return err
//	}
//	for _, v := range info.Versions {
//	    fmt.Println(v.Version, v.Homepage)
//	}
//
// # Minified Metadata
//
// The p2 API serves "composer/2.0" minified documents: the first release is
// complete and each following release only carries the fields that changed.
// [Client.FetchPackage] expands them so every [VersionInfo] is complete.
//
// # Package Pages
//
// [PackageInfo.URL] points at https://packagist.org/packages/{vendor}/{package},
// the page editors open for goto-definition.
//
// [Packagist]: https://packagist.org
package packagist
