package rules

import "markscan/internal/tsast"

// ListClasses returns the file's top-level classes in declaration order.
func ListClasses(f *tsast.File) []*tsast.Class {
	if f == nil {
		return nil
	}
	return f.Classes
}

// FindDecorator returns the first decorator on cls named exactly name.
func FindDecorator(cls *tsast.Class, name string) (*tsast.Decorator, bool) {
	if cls == nil {
		return nil, false
	}
	for i := range cls.Decorators {
		if cls.Decorators[i].Name == name {
			return &cls.Decorators[i], true
		}
	}
	return nil, false
}
