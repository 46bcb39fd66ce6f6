package plugin

import "fmt"

// PluginInstantiationError reports a descriptor that did not yield a plugin.
type PluginInstantiationError struct {
	ID  string
	Err error
}

func (e *PluginInstantiationError) Error() string {
	return fmt.Sprintf("[--%s--] there was an error while initializing the plugin: %v", e.ID, e.Err)
}

func (e *PluginInstantiationError) Unwrap() error { return e.Err }

// InvalidMetadataError reports a plugin whose declared metadata is unusable.
type InvalidMetadataError struct {
	ID     string
	Field  string
	Reason string
}

func (e *InvalidMetadataError) Error() string {
	return fmt.Sprintf("[--%s--] invalid %s: %s", e.ID, e.Field, e.Reason)
}
