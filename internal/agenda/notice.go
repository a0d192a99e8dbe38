package agenda

// NoticeKind selects the styling of a notice.
type NoticeKind string

const (
	NoticeSuccess     NoticeKind = "success"
	NoticeDestructive NoticeKind = "destructive"
)

// Notice is a short user-facing message shown after an action.
type Notice struct {
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Kind        NoticeKind `json:"kind"`
}

var (
	NoticeRequiredFields = Notice{
		Code:        "required",
		Title:       "Campos obrigatórios",
		Description: "Preencha todos os campos obrigatórios.",
		Kind:        NoticeDestructive,
	}
	NoticeInvalidFields = Notice{
		Code:        "invalid",
		Title:       "Campos inválidos",
		Description: "Selecione um produto e um turno da lista.",
		Kind:        NoticeDestructive,
	}
	NoticeCreated = Notice{
		Code:        "created",
		Title:       "Agendamento criado",
		Description: "O atendimento foi agendado com sucesso!",
		Kind:        NoticeSuccess,
	}
	NoticeDeleted = Notice{
		Code:        "deleted",
		Title:       "Agendamento removido",
		Description: "O atendimento foi removido da agenda.",
		Kind:        NoticeSuccess,
	}
)

// NoticeByCode resolves the code carried in a redirect back to its notice.
func NoticeByCode(code string) (Notice, bool) {
	for _, n := range []Notice{NoticeRequiredFields, NoticeInvalidFields, NoticeCreated, NoticeDeleted} {
		if n.Code == code {
			return n, true
		}
	}
	return Notice{}, false
}
