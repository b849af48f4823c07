package document

import "reflect"

// MergeUI overlays patch onto base. Fields left nil in patch keep the base
// value; Extra is merged key by key. Neither argument is modified.
func MergeUI(base UIState, patch *UIState) UIState {
	if patch == nil {
		return Clone(base)
	}
	return Overlay(*patch, base)
}

// Overlay returns a copy of base with every populated part of patch applied on
// top. Nil pointers, nil maps and nil slices in patch count as unpopulated;
// maps are merged recursively, everything else in patch replaces base.
func Overlay[T any](patch, base T) T {
	var zero T
	merged := overlayValue(reflect.ValueOf(patch), reflect.ValueOf(base))
	if !merged.IsValid() {
		return zero
	}
	target := reflect.TypeOf(zero)
	if target != nil && merged.Type() != target {
		return merged.Convert(target).Interface().(T)
	}
	return merged.Interface().(T)
}

// Clone deep-copies maps, slices, pointers and structs reachable from value.
func Clone[T any](value T) T {
	var zero T
	cloned := cloneValue(reflect.ValueOf(value))
	if !cloned.IsValid() {
		return zero
	}
	return cloned.Interface().(T)
}

func overlayValue(patch, base reflect.Value) reflect.Value {
	if !patch.IsValid() {
		return cloneValue(base)
	}
	switch patch.Kind() {
	case reflect.Pointer:
		if patch.IsNil() {
			return cloneValue(base)
		}
		var baseElem reflect.Value
		if base.IsValid() && base.Kind() == reflect.Pointer && !base.IsNil() {
			baseElem = base.Elem()
		}
		out := reflect.New(patch.Type().Elem())
		out.Elem().Set(overlayValue(patch.Elem(), baseElem))
		return out
	case reflect.Interface:
		if patch.IsNil() {
			return cloneValue(base)
		}
		var baseElem reflect.Value
		if base.IsValid() && !base.IsNil() {
			baseElem = base.Elem()
		}
		return overlayValue(patch.Elem(), baseElem).Convert(patch.Type())
	case reflect.Struct:
		out := reflect.New(patch.Type()).Elem()
		sameType := base.IsValid() && base.Type() == patch.Type()
		for i := 0; i < patch.NumField(); i++ {
			field := out.Field(i)
			if !field.CanSet() {
				continue
			}
			var baseField reflect.Value
			if sameType {
				baseField = base.Field(i)
			}
			field.Set(overlayValue(patch.Field(i), baseField))
		}
		return out
	case reflect.Map:
		if patch.IsNil() {
			return cloneValue(base)
		}
		out := reflect.MakeMapWithSize(patch.Type(), patch.Len())
		if base.IsValid() && base.Kind() == reflect.Map && !base.IsNil() {
			iter := base.MapRange()
			for iter.Next() {
				out.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
			}
		}
		iter := patch.MapRange()
		for iter.Next() {
			if existing := out.MapIndex(iter.Key()); existing.IsValid() && isMapLike(iter.Value()) {
				out.SetMapIndex(iter.Key(), overlayValue(iter.Value(), existing))
				continue
			}
			out.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if patch.IsNil() {
			return cloneValue(base)
		}
		return cloneValue(patch)
	default:
		return cloneValue(patch)
	}
}

func isMapLike(v reflect.Value) bool {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.IsValid() && v.Kind() == reflect.Map
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneValue(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		return cloneValue(v.Elem()).Convert(v.Type())
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if field := out.Field(i); field.CanSet() {
				field.Set(cloneValue(v.Field(i)))
			}
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	default:
		return v
	}
}
