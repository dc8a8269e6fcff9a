package stamp

// Kind selects which fixed template an artifact is stamped onto.
type Kind string

const (
	KindUser     Kind = "user"
	KindOfficial Kind = "official"
)

// Field names one text slot on a template.
type Field string

const (
	FieldName        Field = "name"
	FieldCompany     Field = "company"
	FieldDesignation Field = "designation"
	FieldAmount      Field = "amount"
	FieldCollectedBy Field = "collectedBy"
	FieldCollectedOn Field = "collectedOn"
)

// Fields lists every text slot both templates carry.
var Fields = []Field{
	FieldName, FieldCompany, FieldDesignation,
	FieldAmount, FieldCollectedBy, FieldCollectedOn,
}

// Anchor is a text position in points from the top-left of an A4 page.
type Anchor struct {
	X, Y float64
}

// Box is the signature bounding box for a template.
type Box struct {
	X, Y, W, H float64
}

// Layout constants are per-deployment: they were measured against the two
// shipped templates and the two differ only in vertical placement.
var textAnchors = map[Kind]map[Field]Anchor{
	KindUser: {
		FieldName:        {X: 150, Y: 397},
		FieldCompany:     {X: 230, Y: 417},
		FieldDesignation: {X: 290, Y: 437},
		FieldAmount:      {X: 280, Y: 457},
		FieldCollectedBy: {X: 250, Y: 477},
		FieldCollectedOn: {X: 250, Y: 497},
	},
	KindOfficial: {
		FieldName:        {X: 150, Y: 339},
		FieldCompany:     {X: 230, Y: 359},
		FieldDesignation: {X: 290, Y: 379},
		FieldAmount:      {X: 280, Y: 399},
		FieldCollectedBy: {X: 250, Y: 419},
		FieldCollectedOn: {X: 250, Y: 439},
	},
}

var signatureBoxes = map[Kind]Box{
	KindUser:     {X: 50, Y: 502, W: 100, H: 40},
	KindOfficial: {X: 50, Y: 429, W: 100, H: 40},
}

// Anchors exposes the text layout for one template kind.
func Anchors(kind Kind) map[Field]Anchor {
	return textAnchors[kind]
}

// SignatureBox exposes the signature placement for one template kind.
func SignatureBox(kind Kind) Box {
	return signatureBoxes[kind]
}
