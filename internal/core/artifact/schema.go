package artifact

import "strings"

// ParentRule describes the vertical link a type carries.
type ParentRule struct {
	// Required means the artifact cannot exist without a parent.
	Required bool
	// Allowed lists the parent types accepted. Empty means no parent at all.
	Allowed []Type
	// MustBeApproved means the parent must be APPROVED when the child is created.
	MustBeApproved bool
}

var parentRules = map[Type]ParentRule{
	TypeGoal:     {},
	TypeFeature:  {Required: true, Allowed: []Type{TypeGoal}, MustBeApproved: true},
	TypeResearch: {Required: true, Allowed: []Type{TypeGoal, TypeFeature}},
	TypeUseCase:  {Required: true, Allowed: []Type{TypeFeature}, MustBeApproved: true},
	TypeTask:     {Required: true, Allowed: []Type{TypeUseCase}, MustBeApproved: true},
	TypeUMLModel: {Allowed: []Type{TypeFeature, TypeUseCase}},
}

// ParentRuleFor returns the parent rule for a type.
func ParentRuleFor(t Type) ParentRule {
	return parentRules[t]
}

// AllowsParentType reports whether a child of type t may hang under parentType.
func (r ParentRule) AllowsParentType(parentType Type) bool {
	for _, a := range r.Allowed {
		if a == parentType {
			return true
		}
	}
	return false
}

// RequiredFields lists the type-mandated fields, by their external names.
// "title" is mandatory everywhere; attributes are named by their key.
func RequiredFields(t Type) []string {
	switch t {
	case TypeResearch:
		return []string{"title", AttrHypothesis, AttrVerdict}
	default:
		return []string{"title"}
	}
}

// FieldValue returns the value of a field named by RequiredFields.
func (a *Artifact) FieldValue(name string) string {
	switch name {
	case "title":
		return a.Title
	case "body":
		return a.Body
	case "parent_id":
		return a.ParentID
	default:
		return a.Attr(name)
	}
}

// MissingFields returns the mandated fields that are empty, in declaration order.
func MissingFields(a *Artifact) []string {
	var missing []string
	for _, f := range RequiredFields(a.Type) {
		if strings.TrimSpace(a.FieldValue(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

