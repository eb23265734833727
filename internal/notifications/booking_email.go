package notifications

import (
	"bytes"
	"html/template"

	"github.com/OktaWirawan/anitasalonn/internal/models"
)

const bookingConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Halo {{.Name}},</p>
  <p>Janji temu Anda telah kami terima dan sedang menunggu konfirmasi. Detail:</p>
  <ul>
    <li>Layanan : {{.Service}}</li>
    <li>Tanggal : {{.Date}}</li>
    <li>Jam : {{.Time}}</li>
    {{if .Phone}}<li>Telepon : {{.Phone}}</li>{{end}}
    <li>Nomor janji temu : {{.ID}}</li>
  </ul>
  <p>Kami akan menghubungi Anda segera setelah janji temu dikonfirmasi.</p>
  <p>Terima kasih,<br>Anita Salon</p>
</body>
</html>`

var bookingConfirmationTmpl = template.Must(template.New("booking_confirmation").Parse(bookingConfirmationTemplate))

func buildBookingConfirmationHTML(booking models.Booking) (string, error) {
	var buf bytes.Buffer
	if err := bookingConfirmationTmpl.Execute(&buf, booking); err != nil {
		return "", err
	}
	return buf.String(), nil
}
