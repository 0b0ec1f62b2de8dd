// Package extract implements driven.TextExtractor for downloaded PDFs.
//
// Two backends are available: the poppler pdftotext binary, run as a
// subprocess, and an Apache Tika server reached over HTTP.
package extract
