package config

// Configuration keys read by the model behaviors.
const (
	KeySlugField     = "sluggable_fields.slug"
	KeyTitleField    = "sluggable_fields.title"
	KeyActiveField   = "has_active.is_active"
	KeyParentField   = "parent_child.parent_id"
	KeyLanguageField = "has_language.language_field"

	// KeyEagerBatchSize bounds the keys of one eager loading query.
	KeyEagerBatchSize = "store.eager_batch_size"

	// KeyLegacyParentField is where older configuration files stored the
	// parent column. It is honored only while KeyParentField keeps its
	// default value.
	KeyLegacyParentField = "has_active.parent_id"
)

// Default column names.
const (
	DefaultSlugField     = "slug"
	DefaultTitleField    = "title"
	DefaultActiveField   = "is_active"
	DefaultParentField   = "parent_id"
	DefaultLanguageField = "lang"
)

// DefaultEagerBatchSize is the value of KeyEagerBatchSize when unset.
const DefaultEagerBatchSize = 500

// ParentField resolves the parent column name, falling back to the legacy
// key when the primary key is not customized.
func ParentField(r Resolver) string {
	name := r.Get(KeyParentField, DefaultParentField)
	if name != DefaultParentField {
		return name
	}
	return r.Get(KeyLegacyParentField, name)
}
