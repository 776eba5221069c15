package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"

	"prakritikart_back_end/internal/models"
)

// GenerateUpiQR génère un QR UPI en base64 prêt à mettre dans <img src="...">
func GenerateUpiQR(vpa, payeeName, ref string, amount float64) (string, error) {
	q := url.Values{}
	q.Set("pa", vpa)
	q.Set("pn", payeeName)
	q.Set("am", fmt.Sprintf("%.2f", amount))
	q.Set("cu", "INR")
	q.Set("tr", ref)

	png, err := qrcode.Encode("upi://pay?"+q.Encode(), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// GenerateInvoicePDF construit la facture HTML puis l'imprime en PDF
// via Chrome headless.
func GenerateInvoicePDF(orderID int64, transactionID string, items []models.OrderItemDetails, total float64) ([]byte, error) {
	vpa := os.Getenv("COMPANY_UPI_VPA")
	if vpa == "" {
		vpa = "prakritikart@upi"
	}
	companyName := os.Getenv("COMPANY_NAME")
	if companyName == "" {
		companyName = "PrakritiKart"
	}

	qrBase64, err := GenerateUpiQR(vpa, companyName, transactionID, total)
	if err != nil {
		return nil, fmt.Errorf("erreur génération QR: %v", err)
	}

	html := buildInvoiceHTML(orderID, transactionID, items, total, qrBase64)
	return renderHTMLToPDF(html)
}

func buildInvoiceHTML(orderID int64, transactionID string, items []models.OrderItemDetails, total float64, qrBase64 string) string {
	rows := ""
	for _, item := range items {
		rows += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>₹%.2f</td>
			</tr>`, item.ProductName, item.Quantity, item.Price)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; margin: 40px; color: #333; }
		table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
		th, td { padding: 8px; border: 1px solid #ddd; text-align: left; }
		th { background-color: #f0f0f0; }
		.total { text-align: right; font-weight: bold; font-size: 1.1em; }
	</style>
</head>
<body>
	<h1>Facture — Commande #%d</h1>
	<p>Référence de paiement : %s</p>
	<table>
		<thead>
			<tr><th>Produit</th><th>Quantité</th><th>Prix</th></tr>
		</thead>
		<tbody>%s</tbody>
	</table>
	<p class="total">Total : ₹%.2f</p>
	<img src="%s" width="160" height="160" alt="QR UPI">
</body>
</html>`, orderID, transactionID, rows, total, qrBase64)
}

func renderHTMLToPDF(html string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(dataURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}
