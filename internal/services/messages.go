package services

import (
	"fmt"
	"os"
)

// Scripted conversation messages. These are the only texts customers ever
// see; internal errors are never surfaced.
const (
	msgSessionEnded = "La sesión anterior finalizó ✅\nEscribe *hola* para empezar una nueva compra 🍷"

	msgFarewell        = "Conversación finalizada. ¡Gracias por tu compra! 🍇\nEscribe *hola* para iniciar otra."
	msgClosedByKeyword = "Conversación finalizada. Escribe *hola* para empezar de nuevo 🍷"

	msgNoDelivery = "Por ahora solo entregamos en *CDMX y Querétaro*. ¡Pronto más ciudades! 🙏"

	msgAskName  = "Perfecto. ¿Cuál es tu *nombre completo*?"
	msgAskEmail = "Gracias. ¿Cuál es tu *correo electrónico*?"
	msgBadEmail = "Correo no válido. Intenta de nuevo (ej. nombre@gmail.com)"

	msgAskWine = "¿Qué vino deseas?\n" +
		"- Vino Tinto Scala – Tempranillo\n" +
		"- Vino Espumoso Scala – Moscatel de Alejandría"
	msgWineNotFound = "No encontré ese vino 😅. Elige de la lista:\n" +
		"- Vino Tinto Scala – Tempranillo\n" +
		"- Vino Espumoso Scala – Moscatel de Alejandría"
	msgWineUnknownKey = "No reconozco ese vino, por favor elige uno de la lista."

	msgConfirmPrompt = "Por favor responde 'sí' o 'no' para confirmar o cancelar tu pedido."
	msgCancelled     = "🛑 Pedido cancelado. Escribe *menu* para volver a empezar."

	msgProofReceived = "¡Gracias! Recibimos tu comprobante ✅ En breve te contactaremos para coordinar la entrega 🍷"

	msgFallback = "No entendí eso 🤔. Escribe *hola* para empezar o usa los botones del menú."

	featuresMsg = "Tenemos:\n" +
		"• *Vino Tinto Scala – Tempranillo* 🍷\n" +
		"  100% Tempranillo (Valle de la Grulla, Ensenada). Frutal, dulce y equilibrado.\n\n" +
		"• *Vino Espumoso Scala – Moscatel de Alejandría* 🍾\n" +
		"  Fresco, floral y afrutado, de burbuja fina. Ideal para mariscos, postres y celebraciones.\n"

	pricesMsg = "Precios Scala Dei:\n" +
		"• Vino Tinto Scala – Tempranillo — $290\n" +
		"• Vino Espumoso Scala – Moscatel de Alejandría — $290\n"
)

// PaymentDetails holds the bank transfer instructions included in the
// order confirmation.
type PaymentDetails struct {
	Bank        string
	Beneficiary string
	CLABE       string
}

// PaymentDetailsFromEnv loads bank details with development defaults.
func PaymentDetailsFromEnv() PaymentDetails {
	details := PaymentDetails{
		Bank:        os.Getenv("BANCO"),
		Beneficiary: os.Getenv("BENEFICIARIO"),
		CLABE:       os.Getenv("CLABE"),
	}
	if details.Bank == "" {
		details.Bank = "BBVA"
	}
	if details.Beneficiary == "" {
		details.Beneficiary = "TU BODEGA SA DE CV"
	}
	if details.CLABE == "" {
		details.CLABE = "012345678901234567"
	}
	return details
}

func paymentInstructions(details PaymentDetails, total float64, orderID uint) string {
	return fmt.Sprintf(
		"Excelente. Total: $%.2f MXN.\n\n"+
			"💳 Depósito/transferencia a:\n"+
			"%s\nBeneficiario: %s\nCLABE: %s\n"+
			"Concepto: Pedido %d\n\n"+
			"📸 Cuando tengas el comprobante, envía la foto aquí o escribe *PAGADO*.",
		total, details.Bank, details.Beneficiary, details.CLABE, orderID,
	)
}

func orderSummary(wineName string, qty int, total float64) string {
	return fmt.Sprintf(
		"📝 *Resumen de tu pedido:*\n"+
			"• Vino: %s\n"+
			"• Cantidad: %d botella(s)\n"+
			"• Total: $%.0f MXN\n\n"+
			"¿Deseas confirmar tu pedido? (Responde 'sí' o 'no')",
		wineName, qty, total,
	)
}

// Button prompts

func (e *ConversationEngine) askCity(to string) {
	e.sendButtons(to, "👋 ¿En qué ciudad te encuentras?", []Button{
		{ID: "cdmx", Label: "CDMX"},
		{ID: "qro", Label: "Querétaro"},
		{ID: "otra", Label: "Otra"},
	})
}

func (e *ConversationEngine) showMenu(to string) {
	e.sendButtons(to, "Menú principal:\n• Características\n• Precio\n• Comprar", []Button{
		{ID: "caracteristicas", Label: "Características"},
		{ID: "precios", Label: "Precio"},
		{ID: "comprar", Label: "Comprar"},
	})
}

func (e *ConversationEngine) askCloseOrContinue(to string) {
	e.sendButtons(to, "¿Deseas *seguir comprando* o *cerrar* la conversación?", []Button{
		{ID: "seguir", Label: "Seguir"},
		{ID: "cerrar", Label: "Cerrar"},
	})
}
