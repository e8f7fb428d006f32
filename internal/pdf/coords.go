package pdf

// Point is a position in either coordinate space.
type Point struct {
	X float64
	Y float64
}

// ToDocumentSpace converts a point picked in top-down screen pixels into PDF
// user space, where the origin is the page's bottom-left corner. scale is the
// render zoom factor and must be > 0; pageHeight is the page height in PDF
// user space units.
func ToDocumentSpace(screenX, screenY, pageHeight, scale float64) Point {
	return Point{
		X: screenX / scale,
		Y: pageHeight - screenY/scale,
	}
}

// ToScreenSpace is the exact inverse of ToDocumentSpace.
func ToScreenSpace(docX, docY, pageHeight, scale float64) Point {
	return Point{
		X: docX * scale,
		Y: (pageHeight - docY) * scale,
	}
}
