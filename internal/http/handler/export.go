package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"backend-evoting/internal/config"

	"github.com/gofiber/fiber/v2"
)

// ExportResultsCSV - unduh hasil perhitungan suara sebagai CSV
func ExportResultsCSV(c *fiber.Ctx) error {
	summary, err := computeTally()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menghitung hasil suara",
		})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"peringkat", "no_urut", "nama", "suara", "persentase", "unggul"})
	for i, r := range summary.Results {
		w.Write([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.Candidate.NoUrut),
			r.Candidate.Nama,
			strconv.Itoa(r.Votes),
			strconv.FormatFloat(r.Percentage, 'f', 1, 64),
			strconv.FormatBool(r.Leading),
		})
	}
	w.Write([]string{"", "", "TOTAL", strconv.Itoa(summary.TotalBallots), "", ""})
	w.Flush()
	if err := w.Error(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal membuat file CSV",
		})
	}

	fileName := fmt.Sprintf("hasil-voting-%s.csv", config.LocalNow().Format("20060102-150405"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")

	return c.Send(buf.Bytes())
}
