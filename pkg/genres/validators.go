package genres

type GenrePayload struct {
	Name string `form:"name" json:"name" mod:"trim,sanitize" validate:"required,min=3,max=100"`
}
