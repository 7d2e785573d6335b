// Package view projects entities into JSON objects that contain only the
// fields belonging to the requested visibility groups.
package view

import "slices"

type Group string

const (
	ProductsIndex   Group = "products.index"
	ProductsShow    Group = "products.show"
	ProductsPost    Group = "products.post"
	CategoriesIndex Group = "categories.index"
	CategoriesShow  Group = "categories.show"
	ImagesIndex     Group = "images.index"
	UserIndex       Group = "user.index"
	UserShow        Group = "user.show"
	UserRegister    Group = "user.register"
)

// Field describes one output key of T. Value receives the requested groups
// so nested relations can be projected with them.
type Field[T any] struct {
	Name   string
	Groups []Group
	Value  func(v T, groups []Group) any
}

// Schema is the ordered field table of T.
type Schema[T any] []Field[T]

// Project keeps the fields tagged with at least one of groups.
func (s Schema[T]) Project(v T, groups ...Group) *Object {
	obj := NewObject()
	for _, f := range s {
		if !inAny(f.Groups, groups) {
			continue
		}
		obj.With(f.Name, f.Value(v, groups))
	}
	return obj
}

// ProjectAll projects each element; a nil slice becomes an empty list.
func (s Schema[T]) ProjectAll(items []T, groups ...Group) []*Object {
	out := make([]*Object, 0, len(items))
	for _, it := range items {
		out = append(out, s.Project(it, groups...))
	}
	return out
}

// Fields lists the names visible for groups, in output order.
func (s Schema[T]) Fields(groups ...Group) []string {
	var names []string
	for _, f := range s {
		if inAny(f.Groups, groups) {
			names = append(names, f.Name)
		}
	}
	return names
}

func inAny(tagged, requested []Group) bool {
	for _, g := range requested {
		if slices.Contains(tagged, g) {
			return true
		}
	}
	return false
}
