package config

// LimitsConfig ограничивает размеры полей заметки и выборок.
type LimitsConfig struct {
	MaxTitleLength    int `yaml:"max_title_length" env:"NOTES_MAX_TITLE_LENGTH" env-default:"255"`
	MaxBodyLength     int `yaml:"max_body_length" env:"NOTES_MAX_BODY_LENGTH" env-default:"65536"`
	MaxCategoryLength int `yaml:"max_category_length" env:"NOTES_MAX_CATEGORY_LENGTH" env-default:"50"`
	MaxListLimit      int `yaml:"max_list_limit" env:"NOTES_MAX_LIST_LIMIT" env-default:"500"`
}
