package models

// PayerContact identifies the customer to the payment gateway.
type PayerContact struct {
	ActorID string `json:"actorId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	// PaymentMethod is an optional gateway-side method id for card charges.
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

func PayerFrom(a *Actor) PayerContact {
	return PayerContact{ActorID: a.ID, Name: a.DisplayName, Email: a.Email, Phone: a.Phone}
}
