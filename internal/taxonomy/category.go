package taxonomy

// Category groups catalog services.
type Category string

const (
	CategoryPreventive   Category = "preventivo"
	CategoryRestorative  Category = "restaurativo"
	CategoryEndodontics  Category = "endodoncia"
	CategoryPeriodontics Category = "periodoncia"
	CategoryOrthodontics Category = "ortodoncia"
	CategorySurgery      Category = "cirugia"
	CategoryProsthetics  Category = "protesis"
	CategoryCosmetic     Category = "estetico"
	CategoryPediatric    Category = "pediatrico"
	CategoryOther        Category = "otro"
)

func Categories() []Category {
	return []Category{
		CategoryPreventive, CategoryRestorative, CategoryEndodontics, CategoryPeriodontics, CategoryOrthodontics,
		CategorySurgery, CategoryProsthetics, CategoryCosmetic, CategoryPediatric, CategoryOther,
	}
}

func ParseCategory(value string) (Category, error) {
	return parse("service category", value, Category.Valid)
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPreventive, CategoryRestorative, CategoryEndodontics, CategoryPeriodontics, CategoryOrthodontics,
		CategorySurgery, CategoryProsthetics, CategoryCosmetic, CategoryPediatric, CategoryOther:
		return true
	}
	return false
}

func (c Category) Label() string {
	switch c {
	case CategoryPreventive:
		return "Preventivo"
	case CategoryRestorative:
		return "Restaurativo"
	case CategoryEndodontics:
		return "Endodoncia"
	case CategoryPeriodontics:
		return "Periodoncia"
	case CategoryOrthodontics:
		return "Ortodoncia"
	case CategorySurgery:
		return "Cirugía"
	case CategoryProsthetics:
		return "Prótesis"
	case CategoryCosmetic:
		return "Estético"
	case CategoryPediatric:
		return "Pediátrico"
	case CategoryOther:
		return "Otro"
	}
	return string(c)
}

func (c Category) Style() Style {
	switch c {
	case CategoryPreventive:
		return StyleGreen
	case CategoryRestorative:
		return StyleBlue
	case CategoryEndodontics:
		return StyleRed
	case CategoryPeriodontics:
		return StylePurple
	case CategoryOrthodontics:
		return StyleYellow
	case CategorySurgery:
		return StyleOrange
	case CategoryProsthetics:
		return StyleCyan
	case CategoryCosmetic:
		return StylePink
	case CategoryPediatric:
		return StyleEmerald
	}
	return StyleGray
}
