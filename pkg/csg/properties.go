package csg

// Properties is named metadata attached to a solid, such as the center of a
// primitive. Nested Properties values form a tree.
type Properties map[string]any

// Merge returns a copy of p extended with the entries of other that p lacks.
// Where both hold Properties under the same name the two are merged the same
// way; on any other clash p wins. Neither input is modified.
func (p Properties) Merge(other Properties) Properties {
	result := p.clone()
	addFrom(result, other)
	return result
}

func (p Properties) clone() Properties {
	result := make(Properties, len(p))
	for k, v := range p {
		if nested, ok := v.(Properties); ok {
			v = nested.clone()
		}
		result[k] = v
	}
	return result
}

func addFrom(dst, src Properties) {
	for k, v := range src {
		existing, ok := dst[k]
		if !ok {
			if nested, isProps := v.(Properties); isProps {
				v = nested.clone()
			}
			dst[k] = v
			continue
		}
		dstNested, dstOK := existing.(Properties)
		srcNested, srcOK := v.(Properties)
		if dstOK && srcOK {
			addFrom(dstNested, srcNested)
		}
	}
}
