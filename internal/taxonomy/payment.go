package taxonomy

// PaymentMethod is how one part of a bill was paid.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "efectivo"
	MethodCreditCard   PaymentMethod = "tarjeta_credito"
	MethodDebitCard    PaymentMethod = "tarjeta_debito"
	MethodBankTransfer PaymentMethod = "transferencia"
	MethodCheck        PaymentMethod = "cheque"
	MethodOther        PaymentMethod = "otro"
)

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodCheck, MethodOther}
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parse("payment method", value, PaymentMethod.Valid)
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodCheck, MethodOther:
		return true
	}
	return false
}

func (m PaymentMethod) Label() string {
	switch m {
	case MethodCash:
		return "Efectivo"
	case MethodCreditCard:
		return "Tarjeta Crédito"
	case MethodDebitCard:
		return "Tarjeta Débito"
	case MethodBankTransfer:
		return "Transferencia"
	case MethodCheck:
		return "Cheque"
	case MethodOther:
		return "Otro"
	}
	return string(m)
}

func (m PaymentMethod) Style() Style {
	switch m {
	case MethodCash:
		return StyleGreen
	case MethodCreditCard:
		return StyleBlue
	case MethodDebitCard:
		return StylePurple
	case MethodBankTransfer:
		return StyleCyan
	case MethodCheck:
		return StyleYellow
	}
	return StyleGray
}

// Gender is the patient's declared gender.
type Gender string

const (
	GenderMale   Gender = "masculino"
	GenderFemale Gender = "femenino"
	GenderOther  Gender = "otro"
)

func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderOther}
}

func ParseGender(value string) (Gender, error) {
	return parse("gender", value, Gender.Valid)
}

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Masculino"
	case GenderFemale:
		return "Femenino"
	case GenderOther:
		return "Otro"
	}
	return string(g)
}

func (g Gender) Style() Style {
	return StyleGray
}
