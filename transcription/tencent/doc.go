// Package tencent implements the Tencent Cloud ASR recognizer.
//
// One Client serves both capabilities. Inline mode sends the clip with the
// SentenceRecognition action; file mode points CreateRecTask at a staged URL
// and polls DescribeTaskStatus. Every request is signed with TC3-HMAC-SHA256
// at the time it is sent, using a clock corrected for skew against the API's
// Date header. A signature-expired rejection triggers one resync and one
// retry.
package tencent
