package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
// A nil VersionLog keeps every store in memory only.
type RepositoryProvider struct {
	VersionLog VersionLogRepositoryFacade
}
