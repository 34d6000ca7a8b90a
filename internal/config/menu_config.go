package config

type MenuConfig interface {
	GetMenuCategories() []string
	GetMenuSeedFile() string
}

type Menu struct {
	src *source
}

var _ MenuConfig = Menu{}

func (m Menu) GetMenuCategories() []string {
	return m.src.getList("MENU_CATEGORIES", "pizza,drink")
}

func (m Menu) GetMenuSeedFile() string {
	return m.src.get("MENU_SEED_FILE", "")
}
