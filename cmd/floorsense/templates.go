package main

const defaultConfigTemplate = `# floorsense workspace configuration
log_level: info

# reject fails an assessment on a link to an unknown zone; skip drops the link.
link_policy: reject

# Overrides of the zone-type intensity table used for inferred links.
intensity_matrix: []
#  - {a: lab, b: lounge, intensity: medium}

# Per zone type overrides of the dimension base weights.
weight_adjustments: {}
#  lab: {learner: 0.3}

serve:
  addr: ":8089"

watch:
  interval: 2s
  notifications: false
`

const studioLayoutTemplate = `name: studio
description: Starter floor plan created by floorsense init.
dimensions:
  width: 30
  height: 20
  unit: m
zones:
  - id: entrance
    name: Entrance
    type: entrance
    position: {x: 12, y: 0}
    size: {width: 6, height: 3}
  - id: desks-a
    name: Desks A
    type: workspace
    position: {x: 0, y: 4}
    size: {width: 10, height: 7}
  - id: desks-b
    name: Desks B
    type: workspace
    position: {x: 20, y: 4}
    size: {width: 10, height: 7}
  - id: huddle
    name: Huddle Room
    type: meeting
    position: {x: 12, y: 6}
    size: {width: 6, height: 5}
  - id: lab
    name: Hardware Lab
    type: lab
    position: {x: 0, y: 13}
    size: {width: 9, height: 7}
  - id: lounge
    name: Lounge
    type: lounge
    position: {x: 12, y: 14}
    size: {width: 8, height: 6}
  - id: store
    name: Storage
    type: storage
    position: {x: 26, y: 16}
    size: {width: 4, height: 4}
`

const studioLinksTemplate = `links:
  - id: desks-a-lab
    source_zone_id: desks-a
    target_zone_id: lab
    intensity: high
  - id: desks-b-huddle
    source_zone_id: desks-b
    target_zone_id: huddle
    intensity: high
  - id: lab-store
    source_zone_id: lab
    target_zone_id: store
    intensity: medium
    custom_weight: 1.5
`
