package playground

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/assembler"
)

// The playground serves a page where Z80 source can be typed and assembled in the browser. The
// page talks to the server over a websocket:
// - assemble: assemble the given source, answered by a result or errors message
type request struct {
	Type   string `json:"type"`
	Source string `json:"source"`
}

type LineError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type resultMessage struct {
	Type       string             `json:"type"`
	Directives string             `json:"directives"`
	Listing    []string           `json:"listing"`
	Symbols    []assembler.Symbol `json:"symbols"`
	Size       int                `json:"size"`
}

type errorsMessage struct {
	Type   string      `json:"type"`
	Errors []LineError `json:"errors"`
}

type consoleMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func assemble(source string) interface{} {
	res := assembler.Assemble(source)
	if res.Failed() {
		msg := errorsMessage{Type: "errors", Errors: make([]LineError, 0, len(res.Errors))}
		for _, err := range res.Errors {
			msg.Errors = append(msg.Errors, LineError{Line: err.Line, Message: err.Message})
		}
		return msg
	}

	return resultMessage{
		Type:       "result",
		Directives: res.Directives(),
		Listing:    res.Listing(),
		Symbols:    assembler.SortedSymbols(res.Labels),
		Size:       len(res.Bytes()),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				glog.Warningf("read: %v", err)
			}
			return
		}

		var req request
		if err := json.Unmarshal(messageBytes, &req); err != nil {
			glog.V(1).Infof("json: %v", err)
			if err := conn.WriteJSON(consoleMessage{Type: "console", Text: "malformed message"}); err != nil {
				return
			}
			continue
		}

		var reply interface{}
		switch req.Type {
		case "assemble":
			reply = assemble(req.Source)
		default:
			glog.V(1).Infof("Unknown message type: %s", req.Type)
			reply = consoleMessage{Type: "console", Text: "unknown message type: " + req.Type}
		}

		if err := conn.WriteJSON(reply); err != nil {
			glog.Warningf("write: %v", err)
			return
		}
	}
}

func handleGetPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlPage))
}

func NewHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handleSocket)
	mux.HandleFunc("/", handleGetPage)
	return mux
}

func ListenAndServe(addr string) error {
	glog.Infof("Connect to the playground at http://%s", addr)
	return http.ListenAndServe(addr, NewHandler())
}

var htmlPage = `<html>
<head>
	<title>Z80 Hexer</title>
</head>
<body style="background-color: #1E1E1E; color: white;">
	<h1 style="display: inline-block;">Z80 Hexer</h1>
	<button id="assembleButton" style="margin-left: 50px; height: 40px; width: 100px;">ASSEMBLE</button>
	<br/>
	<textarea id="source" spellcheck="false" style="width: 980px; height: 300px; font-family: monospace; font-size: 1.1em; background-color: black; color: white; border: 2px solid white;">start:	ld b, 10
loop:	djnz loop
	jp start</textarea>
	<h2>Output</h2>
	<pre id="output" style="width: 960px; padding: 10px; font-size: 1.1em; background-color: black; min-height: 200px; border: 2px solid white;"></pre>

	<script>
		var socket;

		function connect() {
			socket = new WebSocket("ws://" + window.location.host + "/ws");
			socket.onmessage = function(event) {
				var data = JSON.parse(event.data);
				var output = document.getElementById("output");
				if (data.type == "result") {
					output.textContent = data.directives + "\n" + data.listing.join("\n");
				} else if (data.type == "errors") {
					output.textContent = data.errors.map(function(e) {
						return "line " + e.line + ": " + e.message;
					}).join("\n");
				} else if (data.type == "console") {
					output.textContent = data.text;
				}
			};
			// when the socket closes, try to reconnect every 3 seconds
			socket.onclose = function() {
				setTimeout(connect, 3000);
			};
		}
		connect();

		document.getElementById("assembleButton").onclick = function() {
			socket.send(JSON.stringify({
				type: "assemble",
				source: document.getElementById("source").value
			}));
		};
	</script>
</body>
</html>`
