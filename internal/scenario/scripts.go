package scenario

import "github.com/soporteti/flowprobe/internal/conversation"

// Scripts returns the four fixed conversations the harness replays, covering
// the short diagnostics path, self-resolution, escalation without contact
// data, and the full ticket flow.
func Scripts() []Scenario {
	return []Scenario{
		{
			Name:  "sim-1",
			Title: "SIMULACIÓN 1: Usuario Anónimo - 'Mi compu no enciende'",
			Turns: []conversation.Turn{
				conversation.Button("BTN_LANG_ES_AR"),
				conversation.Button("BTN_NO_NAME"),
				conversation.Button("BTN_HELP"),
				conversation.Text("mi compu no enciende"),
				conversation.Text("es una notebook HP Pavilion"),
				conversation.Button("BTN_TESTS_DONE"),
			},
		},
		{
			Name:  "sim-2",
			Title: "SIMULACIÓN 2: Roberto - 'Instalar app en Stick TV'",
			Turns: []conversation.Turn{
				conversation.Button("BTN_LANG_ES_ES"),
				conversation.Text("Roberto"),
				conversation.Button("BTN_TASK"),
				conversation.Text("necesito ayuda para instalar una app en mi stick tv"),
				conversation.Button("BTN_SOLVED"),
			},
		},
		{
			Name:  "sim-3",
			Title: "SIMULACIÓN 3: Heber - 'Configurar WAN en MikroTik'",
			Turns: []conversation.Turn{
				conversation.Button("BTN_LANG_EN"),
				conversation.Text("Heber"),
				conversation.Button("BTN_HELP"),
				conversation.Text("asistencia para configurar una conexión wan en un microtik"),
				conversation.Text("MikroTik RB750Gr3"),
				conversation.Button("BTN_TESTS_FAIL"),
				conversation.Button("BTN_YES"),
			},
		},
		{
			Name:  "sim-4",
			Title: "SIMULACIÓN 4: Valeria - 'Notebook no enciende' → Ticket WhatsApp",
			Turns: []conversation.Turn{
				conversation.Button("BTN_LANG_ES_AR"),
				conversation.Text("Valeria"),
				conversation.Button("BTN_HELP"),
				conversation.Text("tu notebook no enciende"),
				conversation.Text("Dell Inspiron 15"),
				conversation.Button("BTN_TESTS_FAIL"),
				conversation.Button("BTN_YES"),
				conversation.Text("valeria@email.com"),
				conversation.Text("+54 9 11 1234-5678"),
			},
		},
	}
}
