package cache

import "fmt"

// WarningKind discriminates the non-fatal advisories a cache emits.
type WarningKind string

const (
	// WarnOutdatedManifest: the manifest being loaded is not the most
	// recent one known. Emitted at most once per cache instance.
	WarnOutdatedManifest WarningKind = "outdated-manifest"

	// WarnEarlierVersionOnDisk: LoadLatestManifest found files of an
	// earlier release already downloaded under this cache root.
	WarnEarlierVersionOnDisk WarningKind = "earlier-version-on-disk"

	// WarnLastRecordInvalid: the persisted last-used record was missing
	// from the known manifest set; the latest manifest was loaded instead.
	WarnLastRecordInvalid WarningKind = "last-record-invalid"
)

// Warning is a structured, observable advisory. The triggering manifest keys
// are carried as fields so callers can act on them rather than parse text.
type Warning struct {
	Kind    WarningKind
	Loaded  string // manifest key being (or about to be) loaded
	Latest  string // latest known manifest key at emission time
	Message string
}

// WarningSink receives advisories. Sinks must not block; they are called
// synchronously from cache operations.
type WarningSink func(Warning)

func outdatedManifest(loaded, latest string) Warning {
	return Warning{
		Kind:   WarnOutdatedManifest,
		Loaded: loaded,
		Latest: latest,
		Message: fmt.Sprintf(
			"%s is not the most up to date version of the dataset. "+
				"A more up to date version of the dataset -- %s -- exists online. "+
				"Use LoadLatestManifest to upgrade, or ListManifests to see all versions.",
			loaded, latest),
	}
}

func earlierVersionOnDisk(latest, prior string) Warning {
	return Warning{
		Kind:   WarnEarlierVersionOnDisk,
		Loaded: latest,
		Latest: latest,
		Message: fmt.Sprintf(
			"You are loading %s. An earlier version of the dataset -- %s -- "+
				"has already been downloaded to this cache directory. "+
				"It is possible that some data files changed between versions; "+
				"call LoadManifest(%q) to keep working with the earlier version.",
			latest, prior, prior),
	}
}

func lastRecordInvalid(latest, record string) Warning {
	return Warning{
		Kind:   WarnLastRecordInvalid,
		Loaded: record,
		Latest: latest,
		Message: fmt.Sprintf(
			"The record of the last manifest used in this cache directory "+
				"is missing or unreadable. Loading latest version -- %s", latest),
	}
}
