package organize

import "strings"

// Others is the fallback category for extensions no other category claims
const Others = "Others"

// Category is a named bucket of lowercase file extensions (no leading dot)
type Category struct {
	Name       string
	Extensions []string
}

// Categories is the category table in display and processing order.
// Extension sets are disjoint; Others is last and matches nothing explicitly.
var Categories = []Category{
	{Name: "Images", Extensions: []string{"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "ico", "tiff", "heic"}},
	{Name: "Documents", Extensions: []string{"pdf", "doc", "docx", "txt", "rtf", "odt", "xls", "xlsx", "ppt", "pptx", "csv"}},
	{Name: "Videos", Extensions: []string{"mp4", "avi", "mkv", "mov", "wmv", "flv", "webm", "m4v", "mpeg", "mpg"}},
	{Name: "Audio", Extensions: []string{"mp3", "wav", "flac", "aac", "ogg", "wma", "m4a", "opus"}},
	{Name: "Archives", Extensions: []string{"zip", "rar", "7z", "tar", "gz", "bz2", "xz", "iso"}},
	{Name: "Code", Extensions: []string{"py", "js", "java", "cpp", "c", "h", "cs", "php", "rb", "go", "rs", "swift", "kt"}},
	{Name: "Web", Extensions: []string{"html", "css", "scss", "sass", "less", "json", "xml", "yaml", "yml"}},
	{Name: "Executables", Extensions: []string{"exe", "msi", "app", "deb", "rpm", "dmg", "apk"}},
	{Name: Others},
}

var byExtension = indexCategories(Categories)

func indexCategories(table []Category) map[string]string {
	index := make(map[string]string)
	for _, c := range table {
		for _, ext := range c.Extensions {
			// first category wins if the table ever overlaps
			if _, seen := index[ext]; !seen {
				index[ext] = c.Name
			}
		}
	}
	return index
}

// CategoryNames returns the category names in table order
func CategoryNames() []string {
	names := make([]string, 0, len(Categories))
	for _, c := range Categories {
		names = append(names, c.Name)
	}
	return names
}

// Categorize maps an extension (without dot, any case) to its category.
// Unknown and empty extensions map to Others.
func Categorize(ext string) string {
	if name, ok := byExtension[strings.ToLower(ext)]; ok {
		return name
	}
	return Others
}
