package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/heater-controller/internal/mqtt"
	"github.com/sweeney/heater-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"temp": func(v float32) string {
		return fmt.Sprintf("%.2f", v)
	},
	"saturation": func(s string) string {
		if s == "" {
			return "none"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Heater Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.sat { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Heater Controller{{if .Config.Simulated}} (simulated){{end}}{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Heater</h2>
<table>
<tr><th>Setpoint</th><td id="setpoint">{{temp .Reading.Setpoint}}</td></tr>
<tr><th>Measurement</th><td id="measurement">{{temp .Reading.Measurement}}</td></tr>
<tr><th>Output</th><td id="current-mv">{{.Reading.CurrentMv}} / {{.Config.WindowSize}}</td></tr>
<tr><th>Saturation</th><td id="saturation"{{if .Reading.Saturation}} class="sat"{{end}}>{{saturation (printf "%s" .Reading.Saturation)}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>PID</h2>
<table>
<tr><th>Gains</th><td>Kp={{.Config.Kp}} Ki={{.Config.Ki}} Kd={{.Config.Kd}}</td></tr>
<tr><th>P / I / D</th><td>{{temp .Reading.P}} / {{temp .Reading.I}} / {{temp .Reading.D}}</td></tr>
<tr><th>Integral</th><td>{{temp .Reading.Integral}}</td></tr>
<tr><th>MV limits</th><td>{{.Config.MvMin}}..{{.Config.MvMax}}</td></tr>
</table>

<h2>Statistics</h2>
<table>
<tr><th>Average</th><td id="average">{{temp .Reading.Average}}</td></tr>
<tr><th>Std dev</th><td id="stddev">{{temp .Reading.StdDev}}</td></tr>
<tr><th>Warm</th><td>{{if .Reading.Warm}}yes{{else}}no{{end}}</td></tr>
<tr><th>Samples</th><td>{{.Counts.Samples}}</td></tr>
<tr><th>Saturated high / low</th><td>{{.Counts.SaturatedHigh}} / {{.Counts.SaturatedLow}}</td></tr>
</table>

<h2>Cycle Gate</h2>
<table>
<tr><th>Window</th><td>{{.Config.WindowSize}}</td></tr>
<tr><th>Duty target</th><td>{{.Gate.DutyTarget}}</td></tr>
<tr><th>Cycles remaining</th><td>{{.Gate.CyclesRemaining}}</td></tr>
<tr><th>Zero-cross edges</th><td>{{.Gate.Edges}}</td></tr>
<tr><th>Output errors</th><td>{{.Gate.OutputErrors}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sample period</th><td>{{.Config.SamplePeriodMs}}ms</td></tr>
<tr><th>Telemetry</th><td>{{if eq .Config.TelemetryMs 0}}disabled{{else}}{{.Config.TelemetryMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "{{.Topic}}";
  var dot = document.getElementById("live-dot");

  function setText(id, v) {
    document.getElementById(id).textContent = v;
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (msg.heater) {
        setText("setpoint", msg.heater.setpoint.toFixed(2));
        setText("measurement", msg.heater.measurement.toFixed(2));
        setText("current-mv", msg.heater.current_mv + " / {{.Config.WindowSize}}");
        setText("saturation", msg.heater.saturation || "none");
        setText("average", msg.heater.stats.average.toFixed(2));
        setText("stddev", msg.heater.stats.stddev.toFixed(2));
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Topic  string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Topic:    mqtt.Topic,
	}
	indexTmpl.Execute(w, data)
}
