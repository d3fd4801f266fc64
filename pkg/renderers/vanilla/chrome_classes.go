package vanilla

// ChromeClass is a typed identifier for the semantic classes the renderer
// puts on form chrome. The browser runtime locates elements through them.
type ChromeClass string

const (
	ClassForm    ChromeClass = "dynform-form"
	ClassField   ChromeClass = "dynform-field"
	ClassLabel   ChromeClass = "dynform-label"
	ClassError   ChromeClass = "dynform-error"
	ClassFlash   ChromeClass = "dynform-flash"
	ClassActions ChromeClass = "dynform-actions"
)

// flashClasses maps a flash kind to its alert styling.
var flashClasses = map[string]string{
	"success": string(ClassFlash) + " rounded-lg bg-green-50 p-4 text-sm text-green-800",
	"error":   string(ClassFlash) + " rounded-lg bg-red-50 p-4 text-sm text-red-800",
}
