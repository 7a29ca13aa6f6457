package domain

// Имена доменных полей, по которым строятся предикаты. Делегаты сами
// переводят их в выражения своего хранилища; составное имя через точку
// адресует поле связанной сущности.
const (
	FieldDescription   = "description"
	FieldCategoryID    = "categoryId"
	FieldName          = "name"
	FieldPhone         = "phone"
	FieldEmail         = "email"
	FieldClientID      = "clientId"
	FieldStatus        = "status"
	FieldPaymentMethod = "paymentMethod"
	FieldCreatedAt     = "createdAt"
	FieldOrderID       = "orderId"
	FieldClientName    = "client.name"
)

// Predicate — закрытое условие отбора строк. Набор вариантов фиксирован,
// чтобы делегаты могли интерпретировать его исчерпывающим switch.
type Predicate interface {
	isPredicate()
}

// MatchAll пропускает все строки.
type MatchAll struct{}

// Equals требует точного равенства значения поля.
type Equals struct {
	Field string
	Value any
}

// ContainsFold требует вхождения подстроки без учёта регистра.
type ContainsFold struct {
	Field string
	Value string
}

// InSet требует принадлежности значения поля множеству.
type InSet struct {
	Field  string
	Values []string
}

// Range требует попадания значения поля в интервал.
// Обе границы включительные, каждая опциональна.
type Range struct {
	Field string
	From  any
	To    any
}

// And выполняется, когда выполняются все вложенные предикаты.
type And struct {
	Preds []Predicate
}

// Or выполняется, когда выполняется хотя бы один вложенный предикат.
type Or struct {
	Preds []Predicate
}

func (MatchAll) isPredicate()     {}
func (Equals) isPredicate()       {}
func (ContainsFold) isPredicate() {}
func (InSet) isPredicate()        {}
func (Range) isPredicate()        {}
func (And) isPredicate()          {}
func (Or) isPredicate()           {}

// AllOf соединяет предикаты конъюнкцией, нормализуя вырожденные случаи.
func AllOf(preds ...Predicate) Predicate {
	preds = compact(preds)
	switch len(preds) {
	case 0:
		return MatchAll{}
	case 1:
		return preds[0]
	default:
		return And{Preds: preds}
	}
}

// AnyOf соединяет предикаты дизъюнкцией, нормализуя вырожденные случаи.
func AnyOf(preds ...Predicate) Predicate {
	preds = compact(preds)
	switch len(preds) {
	case 0:
		return MatchAll{}
	case 1:
		return preds[0]
	default:
		return Or{Preds: preds}
	}
}

func compact(preds []Predicate) []Predicate {
	result := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p == nil {
			continue
		}
		if _, all := p.(MatchAll); all {
			continue
		}
		result = append(result, p)
	}
	return result
}
