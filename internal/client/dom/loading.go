package dom

// Classes toggled on the document element while a filter request is pending.
const (
	LoadingClass = "facet-filter-loading"
	ReadyClass   = "facet-filter-ready"
)

// SetLoading flips the loading indicator classes on <html>.
func SetLoading(doc *Document, guard *Guard, loading bool) {
	root := doc.DocumentElement()
	if root == nil {
		return
	}
	guard.Run(func() {
		if loading {
			doc.AddClass(root, LoadingClass)
			doc.RemoveClass(root, ReadyClass)
			return
		}
		doc.RemoveClass(root, LoadingClass)
		doc.AddClass(root, ReadyClass)
	})
}
