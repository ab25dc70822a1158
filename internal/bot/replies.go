package bot

const (
	greetingReply = "¡Hola! 👋 Soy Guardian Digital, tu asistente de seguridad. " +
		"Reenvíame cualquier mensaje, enlace o audio sospechoso y te diré si es una estafa, " +
		"una noticia falsa o un enlace peligroso. Escribe \"ayuda\" para más información."

	helpReply = "🛡️ Esto es lo que puedo hacer por ti:\n" +
		"• Detectar estafas y fraudes en mensajes que recibas.\n" +
		"• Identificar noticias falsas.\n" +
		"• Revisar enlaces en busca de virus o sitios maliciosos.\n" +
		"• Transcribir y analizar audios que me reenvíes.\n\n" +
		"Solo reenvíame el contenido sospechoso y yo me encargo del resto. 🔍"

	analysisAck = "Recibido ✅ Estoy analizando tu mensaje, te aviso en un momento…"

	audioAck = "Recibido 🎙️ Estoy transcribiendo y analizando tu audio, te aviso en un momento…"
)
