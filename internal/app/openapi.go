package app

// OpenAPISpec is the OpenAPI document served under /docs
var OpenAPISpec = []byte(`openapi: 3.0.3
info:
  title: Meta-Bridge Publishing API
  description: >
    Cross-posting backend for Meta surfaces: compose one post and publish it
    to Facebook pages, groups and Instagram business accounts in one go.
  version: 1.0.0
servers:
  - url: /api/v1
paths:
  /accounts:
    post:
      summary: Connect a Meta account (store its long-lived token)
      responses:
        "201": { description: Account stored }
    get:
      summary: List connected accounts
      responses:
        "200": { description: Accounts }
  /accounts/{userID}:
    get:
      summary: Get one connected account
      responses:
        "200": { description: Account }
        "404": { description: Not found }
    delete:
      summary: Disconnect an account
      responses:
        "204": { description: Deleted }
  /platforms:
    get:
      summary: Catalog buckets (business buckets follow the selected manager)
      parameters:
        - { name: user_id, in: query, required: true, schema: { type: string } }
      responses:
        "200": { description: Buckets }
  /platforms/refresh:
    post:
      summary: Replace the catalog snapshot from the Graph API
      parameters:
        - { name: user_id, in: query, required: true, schema: { type: string } }
      responses:
        "200": { description: Fresh catalog }
  /platforms/managers:
    get:
      summary: List the user's business managers
      responses:
        "200": { description: Managers }
  /platforms/manager:
    put:
      summary: Select a business manager (narrows business buckets)
      responses:
        "200": { description: Manager selected, stale draft targets removed }
    delete:
      summary: Clear the manager selection
      responses:
        "200": { description: Selection cleared }
  /platforms/pages/{pageID}/related:
    get:
      summary: Related targets of a page (linked Instagram, groups)
      responses:
        "200": { description: Suggestions }
  /drafts:
    post:
      summary: Open a composition draft
      responses:
        "201": { description: Draft }
  /drafts/{id}:
    get:
      summary: Get a draft
      responses:
        "200": { description: Draft }
    delete:
      summary: Discard a draft
      responses:
        "204": { description: Deleted }
  /drafts/{id}/text:
    put:
      summary: Update the draft text (restarts debounced link detection)
      responses:
        "200": { description: Draft }
  /drafts/{id}/media:
    post:
      summary: Attach uploaded media to the draft
      responses:
        "200": { description: Draft }
  /drafts/{id}/media/{mediaID}:
    delete:
      summary: Detach one media file
      responses:
        "200": { description: Draft }
  /drafts/{id}/schedule:
    put:
      summary: Set or clear the scheduled publish time
      responses:
        "200": { description: Draft }
  /drafts/{id}/comment-link:
    put:
      summary: Set the first-comment link (Facebook targets only)
      responses:
        "200": { description: Draft }
  /drafts/{id}/links/dismiss:
    post:
      summary: Dismiss a detected link for the lifetime of the draft
      responses:
        "200": { description: Draft }
  /drafts/{id}/targets/primary:
    put:
      summary: Select the primary target
      responses:
        "200": { description: Draft }
  /drafts/{id}/targets/toggle:
    post:
      summary: Toggle a cross-post target (idempotent per state)
      responses:
        "200": { description: Draft }
  /drafts/{id}/smart-mode:
    post:
      summary: Enable smart mode (pins the primary page, suggests related targets)
      responses:
        "200": { description: Draft and suggestions }
    delete:
      summary: Disable smart mode
      responses:
        "200": { description: Draft }
  /drafts/{id}/compatibility:
    get:
      summary: Per-target compatibility verdicts for the current draft
      responses:
        "200": { description: Verdicts }
  /drafts/{id}/submit:
    post:
      summary: Submit the draft to every selected target
      responses:
        "200": { description: Stored post with the per-target result }
  /links/detect:
    post:
      summary: Extract URLs from a text and resolve their previews
      responses:
        "200": { description: Link previews }
  /media/upload:
    post:
      summary: Upload one media file (multipart, field "file")
      responses:
        "201": { description: Stored file URL }
  /posts:
    get:
      summary: Post history
      responses:
        "200": { description: Posts }
  /posts/{id}:
    get:
      summary: One stored post with media and per-target result
      responses:
        "200": { description: Post }
    delete:
      summary: Delete a post that was never pushed to the platforms
      responses:
        "204": { description: Deleted }
        "409": { description: Already published }
  /shops:
    post:
      summary: Create a shop routing template
      responses:
        "201": { description: Template }
    get:
      summary: List shop templates
      responses:
        "200": { description: Templates }
  /shops/{id}:
    get:
      summary: Get a shop template
      responses:
        "200": { description: Template }
    put:
      summary: Update a shop template
      responses:
        "200": { description: Template }
    delete:
      summary: Delete a shop template
      responses:
        "204": { description: Deleted }
  /webhook/items:
    post:
      summary: Ingest one item (multipart store/title/url/description + file)
      responses:
        "201": { description: Ingested item }
        "401": { description: Token mismatch }
    get:
      summary: Ingestion history
      responses:
        "200": { description: Items }
  /webhook/items/{id}:
    get:
      summary: One ingested item
      responses:
        "200": { description: Item }
`)
