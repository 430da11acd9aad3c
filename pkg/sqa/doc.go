/*
Package sqa is the collaborator boundary for the SQA test orchestration
platform.

The platform tracks test plan instances (TPIs): one TPI is a single test
execution whose product-under-test field carries the release fingerprint of
the charm revisions being exercised. The platform reports status with
several overlapping vocabularies across API versions ("In Progress",
"Passed", "success", ...); ParseStatus folds all of them into the closed
Status enumeration at this boundary so the reconciliation core never handles
raw vendor strings.

Client wraps the platform REST API with bounded timeouts and no decision
logic: find instances by fingerprint, start a release test (product version
+ addon upsert + one TPI per configured test plan), create standalone
insight builds, list builds. Addon creation is a lookup-then-create upsert
with a last-writer-wins race policy; the platform is the source of truth.

PriorityGenerator mints the strictly increasing priorities assigned to TPIs
created within one run, so concurrently created instances never collide on
priority and the platform schedules them in submission order.
*/
package sqa
