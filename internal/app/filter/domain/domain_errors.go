package domain

import "errors"

// Domain errors as sentinel values
var (
	// Input errors
	ErrMissingCollectionHandle = errors.New("missing collectionHandle")
	ErrMissingShopDomain       = errors.New("missing shop domain")

	// Collaborator errors
	ErrMissingStorefrontToken = errors.New("missing storefront access token")
	ErrCatalogUnavailable     = errors.New("catalog unavailable")
	ErrCatalogQuery           = errors.New("catalog query returned errors")
)
