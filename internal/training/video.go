package training

// PlaybackTracker maps a video player's "ended" signal onto the one-way
// completed flag. It owns nothing durable; the video pointer belongs to the
// course aggregate the caller is holding.
type PlaybackTracker struct {
	courseID string
	userID   string
	video    *Video
	sink     Sink
}

func NewPlaybackTracker(courseID, userID string, video *Video, sink Sink) *PlaybackTracker {
	return &PlaybackTracker{courseID: courseID, userID: userID, video: video, sink: sink}
}

// OnPlaybackEnded is idempotent: the first call flips completed and emits a
// single video-completed event; later calls do nothing. Quiz outcome is not
// a precondition: a video completes on playback alone.
func (t *PlaybackTracker) OnPlaybackEnded() bool {
	if t.video == nil || t.video.Completed {
		return false
	}
	t.video.Completed = true
	if t.sink != nil {
		t.sink.Notify(Event{
			Type:     EventVideoCompleted,
			CourseID: t.courseID,
			VideoID:  t.video.ID,
			UserID:   t.userID,
		})
	}
	return true
}
