// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package publish

// Step names one stage of a publish job.
type Step string

const (
	StepExtract      Step = "extract"
	StepUpload       Step = "upload"
	StepDeleteSource Step = "delete_source"
	StepThumbnail    Step = "thumbnail"
)

// onFailure is what a step failure does to the job.
type onFailure int

const (
	// abortJob terminates the job at Failed; later steps never run.
	abortJob onFailure = iota
	// warnOnly records a warning and lets the job continue.
	warnOnly
)

type stepPolicy struct {
	onFailure onFailure
	class     error // sentinel the step's errors are classified under
	degrades  bool  // a failure downgrades Succeeded to ThumbnailPartialFailure
}

// policies is the per-step failure table. Upload is the point of no return:
// everything after it is allowed to fail without undoing the delivery.
var policies = map[Step]stepPolicy{
	StepExtract:      {onFailure: abortJob, class: ErrExtractionFailed},
	StepUpload:       {onFailure: abortJob, class: ErrUploadFailed},
	StepDeleteSource: {onFailure: warnOnly},
	StepThumbnail:    {onFailure: warnOnly, class: ErrThumbnail, degrades: true},
}
