package catalog

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrSlugExists       = errors.New("slug already exists")
	ErrOutOfStock       = errors.New("product out of stock")
)
