package view

import (
	"encoding/json"

	"catalog-api/internal/models"
)

// ImageLink is an image together with the absolute URL that serves it.
type ImageLink struct {
	models.Image
	URL string
}

// Field tables. Category and Product refer to each other, so they are filled
// in init rather than at declaration.
var (
	Category Schema[models.Category]
	Product  Schema[models.Product]
	Image    Schema[ImageLink]
	User     Schema[models.User]
)

func init() {
	Category = Schema[models.Category]{
		{Name: "id", Groups: []Group{CategoriesIndex, CategoriesShow, ProductsIndex, ProductsShow, ProductsPost},
			Value: func(c models.Category, _ []Group) any { return c.ID }},
		{Name: "name", Groups: []Group{CategoriesIndex, CategoriesShow, ProductsIndex, ProductsShow, ProductsPost},
			Value: func(c models.Category, _ []Group) any { return c.Name }},
		{Name: "createdAt", Groups: []Group{CategoriesShow},
			Value: func(c models.Category, _ []Group) any { return c.CreatedAt }},
		{Name: "updatedAt", Groups: []Group{CategoriesShow},
			Value: func(c models.Category, _ []Group) any { return c.UpdatedAt }},
		{Name: "products", Groups: []Group{CategoriesShow},
			Value: func(c models.Category, g []Group) any { return Product.ProjectAll(c.Products, g...) }},
	}

	Product = Schema[models.Product]{
		{Name: "id", Groups: []Group{ProductsIndex, ProductsShow, ProductsPost, CategoriesShow},
			Value: func(p models.Product, _ []Group) any { return p.ID }},
		{Name: "name", Groups: []Group{ProductsIndex, ProductsShow, ProductsPost, CategoriesShow},
			Value: func(p models.Product, _ []Group) any { return p.Name }},
		{Name: "description", Groups: []Group{ProductsShow, ProductsPost},
			Value: func(p models.Product, _ []Group) any { return p.Description }},
		{Name: "price", Groups: []Group{ProductsIndex, ProductsShow, ProductsPost},
			Value: func(p models.Product, _ []Group) any { return json.Number(p.Price.StringFixed(2)) }},
		{Name: "quantity", Groups: []Group{ProductsIndex, ProductsShow, ProductsPost},
			Value: func(p models.Product, _ []Group) any { return p.Quantity }},
		{Name: "category", Groups: []Group{ProductsIndex, ProductsShow, ProductsPost},
			Value: func(p models.Product, g []Group) any {
				if p.Category == nil {
					return Category.Project(models.Category{ID: p.CategoryID}, g...)
				}
				return Category.Project(*p.Category, g...)
			}},
		{Name: "createdAt", Groups: []Group{ProductsShow, ProductsPost},
			Value: func(p models.Product, _ []Group) any { return p.CreatedAt }},
		{Name: "updatedAt", Groups: []Group{ProductsShow, ProductsPost},
			Value: func(p models.Product, _ []Group) any { return p.UpdatedAt }},
		{Name: "images", Groups: []Group{ProductsIndex},
			Value: func(p models.Product, g []Group) any {
				links := make([]ImageLink, 0, len(p.Images))
				for _, img := range p.Images {
					links = append(links, ImageLink{Image: img})
				}
				return Image.ProjectAll(links, g...)
			}},
	}

	Image = Schema[ImageLink]{
		{Name: "id", Groups: []Group{ImagesIndex, ProductsIndex},
			Value: func(i ImageLink, _ []Group) any { return i.ID }},
		{Name: "url", Groups: []Group{ImagesIndex},
			Value: func(i ImageLink, _ []Group) any { return i.URL }},
	}

	// no group exposes the password hash
	User = Schema[models.User]{
		{Name: "id", Groups: []Group{UserIndex, UserShow, UserRegister},
			Value: func(u models.User, _ []Group) any { return u.ID }},
		{Name: "username", Groups: []Group{UserIndex, UserShow, UserRegister},
			Value: func(u models.User, _ []Group) any { return u.Username }},
		{Name: "email", Groups: []Group{UserIndex, UserShow, UserRegister},
			Value: func(u models.User, _ []Group) any { return u.Email }},
		{Name: "roles", Groups: []Group{UserIndex, UserShow},
			Value: func(u models.User, _ []Group) any { return u.Roles.Normalize() }},
		{Name: "createdAt", Groups: []Group{UserShow},
			Value: func(u models.User, _ []Group) any { return u.CreatedAt }},
		{Name: "updatedAt", Groups: []Group{UserShow},
			Value: func(u models.User, _ []Group) any { return u.UpdatedAt }},
	}
}
