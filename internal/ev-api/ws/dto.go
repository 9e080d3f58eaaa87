package ws

// ClientMsg é a mensagem de controle enviada pelo cliente WebSocket.
// O stream é global (todo ciclo live vai para todos os conectados);
// o cliente só fala para manter a conexão viva.
type ClientMsg struct {
	Type string `json:"type"` // "ping"
}
