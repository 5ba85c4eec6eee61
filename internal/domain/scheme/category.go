package scheme

// Category is the beneficiary group a scheme targets.
type Category string

// Category constants.
const (
	CategoryFarmer  Category = "farmer"
	CategoryStudent Category = "student"
	CategoryHealth  Category = "health"
	CategoryWomen   Category = "women"
	CategorySenior  Category = "senior"
	CategoryJobs    Category = "jobs"
	// CategoryOther matches every profile category.
	CategoryOther Category = "other"
)

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryFarmer, CategoryStudent, CategoryHealth, CategoryWomen,
		CategorySenior, CategoryJobs, CategoryOther,
	}
}

// IsValid checks if the category is one of the supported values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFarmer, CategoryStudent, CategoryHealth, CategoryWomen,
		CategorySenior, CategoryJobs, CategoryOther:
		return true
	}
	return false
}

// Gender is a gender value. GenderAny is only meaningful on scheme rules.
type Gender string

// Gender constants.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
	GenderAny    Gender = "any"
)

// IsValid checks if the gender is valid for a scheme rule.
func (g Gender) IsValid() bool {
	return g == GenderAny || g.IsProfileGender()
}

// IsProfileGender checks if the gender is valid for a user profile (no "any").
func (g Gender) IsProfileGender() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// Status is the publication state of a scheme.
type Status string

// Status constants.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// IsValid checks if the status is supported.
func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished
}
