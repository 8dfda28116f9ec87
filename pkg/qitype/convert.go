package qitype

// ConvertibleTo implements the assignability rules of spec.md §4.3: a
// source type is convertible to a target type when the rules below
// hold recursively. Dynamic accepts any source when it is the target;
// it is itself produced only by explicit annotation, not by conversion
// the other way.
func (src Type) ConvertibleTo(dst Type) bool {
	if dst.Kind == Dynamic {
		return true
	}
	if src.Kind != dst.Kind {
		return false
	}
	switch src.Kind {
	case Option, VarArgs, List:
		return src.Elem.ConvertibleTo(*dst.Elem)
	case Map:
		return src.Key.ConvertibleTo(*dst.Key) && src.Value.ConvertibleTo(*dst.Value)
	case Tuple:
		if len(src.Elements) != len(dst.Elements) {
			return false
		}
		if src.Name != "" && dst.Name != "" && src.Name != dst.Name {
			return false
		}
		if len(src.Fields) > 0 && len(dst.Fields) > 0 {
			if len(src.Fields) != len(dst.Fields) {
				return false
			}
			for i := range src.Fields {
				if src.Fields[i] != dst.Fields[i] {
					return false
				}
			}
		}
		for i := range src.Elements {
			if !src.Elements[i].ConvertibleTo(dst.Elements[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
