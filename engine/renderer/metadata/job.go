package metadata

/** Definition for the body of a job. Results are sent on the channel. */
type JobStart func(params interface{}, results chan<- interface{}) error

/** Definition for completion of a job. Receives the results channel. */
type JobOnComplete func(results <-chan interface{})

/**
 * @brief Describes a job to be run by the job system.
 */
type JobTask struct {
	/** @brief Data to be passed to the entry point upon execution. */
	InputParams interface{}
	/** @brief Invoked when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked when OnStart succeeds. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked when OnStart fails. Optional. */
	OnFailure JobOnComplete
	/** @brief Invoked after either outcome. Optional. */
	OnCompletionCallback func()
}
