// Package coordinator runs the side-effecting actions a view offers on its
// candidate: requesting documents, submitting them and re-queuing
// extraction. Each action calls the backend once and then reconciles the
// view with one fresh snapshot read. Actions never start or stop polling.
package coordinator
